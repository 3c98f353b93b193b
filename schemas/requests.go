package schemas

type CreateSessionResponse struct {
	SessionId string `json:"sessionId"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
