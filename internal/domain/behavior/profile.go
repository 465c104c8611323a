package behavior

// Profile is a resolved configuration bundle for one agent type: which
// handles apply, their parameters, and declared handle dependencies.
// Profiles are immutable once published under a generation; a reload
// publishes new Profile values under a higher generation.
type Profile struct {
	Key        string
	Generation uint64
	Handles    []string
	Params     map[string]map[string]any
	// HandleDependencies maps a handle id to the handle ids it requires.
	// Advisory: consumers query, nothing enforces.
	HandleDependencies map[string][]string
}

func (p *Profile) HasHandle(id string) bool {
	if p == nil {
		return false
	}
	for _, h := range p.Handles {
		if h == id {
			return true
		}
	}
	return false
}

func (p *Profile) params(handleID string) map[string]any {
	if p == nil || p.Params == nil {
		return nil
	}
	return p.Params[handleID]
}

func (p *Profile) FloatParam(handleID, key string, fallback float64) float64 {
	v, ok := p.params(handleID)[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}

func (p *Profile) IntParam(handleID, key string, fallback int64) int64 {
	v, ok := p.params(handleID)[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return fallback
	}
}

func (p *Profile) BoolParam(handleID, key string, fallback bool) bool {
	if v, ok := p.params(handleID)[key].(bool); ok {
		return v
	}
	return fallback
}

func (p *Profile) StringParam(handleID, key string, fallback string) string {
	if v, ok := p.params(handleID)[key].(string); ok {
		return v
	}
	return fallback
}
