package call

type callInput struct {
	Body CallRequest
}

type callOutput struct {
	Body CallResponse
}

// CallRequest сообщение моста, отправленное по HTTP. Без id хост назначит свой.
type CallRequest struct {
	Type    string `json:"type" minLength:"1" example:"natively.storage.get"`
	ID      string `json:"id,omitempty" example:"c1"`
	Payload any    `json:"payload,omitempty"`
}

// CallResponse единственный ответ на вызов
type CallResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
