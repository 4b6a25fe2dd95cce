package models

import "time"

type Participant struct {
	SessionID string    `json:"-" dynamodbav:"-"`
	Name      string    `json:"name" dynamodbav:"name"`
	Address   string    `json:"address" dynamodbav:"address"`
	CreatedAt time.Time `json:"-" dynamodbav:"createdAt"`
}
