package f

const (
	HealthUp       = "UP"
	HealthDegraded = "DEGRADED"
	HealthDown     = "DOWN"
)

type HealthCheckResponse struct {
	Whoami     string                          `json:"whoami"`
	Status     string                          `json:"status"`
	Components map[string]HealthCheckComponent `json:"components"`
}

type HealthCheckComponent struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type HealthCheck struct {
	service    string
	status     string
	components map[string]HealthCheckComponent
}

func NewHealthCheck(service string) HealthCheck {
	return HealthCheck{
		service:    service,
		status:     HealthUp,
		components: make(map[string]HealthCheckComponent),
	}
}

// Add records a component whose failure takes the whole service DOWN.
func (b *HealthCheck) Add(name string, tester func() error) {
	b.add(name, tester, HealthDown)
}

// AddOptional records a component the service can run without; its failure
// only degrades the service.
func (b *HealthCheck) AddOptional(name string, tester func() error) {
	b.add(name, tester, HealthDegraded)
}

func (b *HealthCheck) add(name string, tester func() error, onFailure string) {
	component := HealthCheckComponent{Status: HealthUp}
	if err := tester(); err != nil {
		component = HealthCheckComponent{Status: onFailure, Message: err.Error()}
		if b.status != HealthDown {
			b.status = onFailure
		}
	}
	b.components[name] = component
}

func (b *HealthCheck) Build() HealthCheckResponse {
	return HealthCheckResponse{
		Whoami:     b.service,
		Status:     b.status,
		Components: b.components,
	}
}
