package schemas

import (
	"encoding/json"
)

type PublisherEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func SessionCreatedEvent(sessionId, gameSlug string) (string, error) {
	type SessionCreatedContent struct {
		SessionId string `json:"sessionId"`
		GameSlug  string `json:"gameSlug"`
	}

	content := SessionCreatedContent{
		SessionId: sessionId,
		GameSlug:  gameSlug,
	}

	return encodeEvent("SessionCreated", content)
}

func SessionEndedEvent(sessionId, gameSlug string) (string, error) {
	type SessionEndedContent struct {
		SessionId string `json:"sessionId"`
		GameSlug  string `json:"gameSlug"`
	}

	content := SessionEndedContent{
		SessionId: sessionId,
		GameSlug:  gameSlug,
	}

	return encodeEvent("SessionEnded", content)
}

func encodeEvent(eventType string, content any) (string, error) {
	message, err := json.Marshal(content)
	if err != nil {
		return "", err
	}

	event := PublisherEvent{
		Type:    eventType,
		Content: string(message),
	}

	e, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	return string(e), nil
}
