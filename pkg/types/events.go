package types

import (
	"encoding/json"
	"time"
)

type AlertOpened struct {
	Alert     Alert     `json:"alert"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AlertOpened) ContentType() string {
	return "application/json"
}
func (e *AlertOpened) TopicName() string {
	return "alerts.alertOpened"
}
func (e *AlertOpened) Body() []byte {
	b, _ := json.Marshal(e)
	return b
}

type AlertEscalated struct {
	Alert     Alert     `json:"alert"`
	Previous  Alert     `json:"previous"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AlertEscalated) ContentType() string {
	return "application/json"
}
func (e *AlertEscalated) TopicName() string {
	return "alerts.alertEscalated"
}
func (e *AlertEscalated) Body() []byte {
	b, _ := json.Marshal(e)
	return b
}

type AlertAcknowledged struct {
	Alert     Alert     `json:"alert"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AlertAcknowledged) ContentType() string {
	return "application/json"
}
func (e *AlertAcknowledged) TopicName() string {
	return "alerts.alertAcknowledged"
}
func (e *AlertAcknowledged) Body() []byte {
	b, _ := json.Marshal(e)
	return b
}

type AlertResolved struct {
	Alert     Alert     `json:"alert"`
	Auto      bool      `json:"auto"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AlertResolved) ContentType() string {
	return "application/json"
}
func (e *AlertResolved) TopicName() string {
	return "alerts.alertResolved"
}
func (e *AlertResolved) Body() []byte {
	b, _ := json.Marshal(e)
	return b
}
