package services

import "fmt"

// EventBroadcaster is the slice of the realtime hub services need. A nil
// broadcaster disables the activity feed.
type EventBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

func houseRoom(houseID int) string {
	return fmt.Sprintf("house_%d", houseID)
}

type houseEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func broadcastHouseEvent(b EventBroadcaster, houseID int, eventType string, payload interface{}) {
	if b == nil {
		return
	}
	b.BroadcastToRoom(houseRoom(houseID), houseEvent{Type: eventType, Payload: payload})
}
