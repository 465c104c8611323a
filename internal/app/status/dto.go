package status

type Response struct {
	ProfileGeneration uint64   `json:"profile_generation"`
	ProfileKeys       []string `json:"profile_keys"`
	AgentCount        int      `json:"agent_count"`
	CurrentStep       uint64   `json:"current_step"`
}
