package models

// AdviceRequest asks the text service for dating advice
type AdviceRequest struct {
	Prompt      string `json:"prompt" validate:"required,min=3,max=2000"`
	OtherUserID uint   `json:"otherUserId,omitempty"`
}

type AdviceResponse struct {
	Suggestion string `json:"suggestion"`
}
