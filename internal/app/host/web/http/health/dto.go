package health

type Input struct{}

type Output struct {
	Body Response
}

// Response состояние хоста
type Response struct {
	Status   string `json:"status" example:"OK" doc:"Health status of the host"`
	Platform string `json:"platform" example:"web" doc:"Host platform profile"`
	Version  string `json:"version" example:"dev"`
	Online   bool   `json:"online" doc:"Last connectivity probe result"`
}
