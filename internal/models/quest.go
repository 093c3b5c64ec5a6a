package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestList is the parent record of an event's quests. It shares the event's id.
type QuestList struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	OrganiserID string             `json:"organiserID" bson:"organiserID"`
	QuestCount  int                `json:"questCount" bson:"questCount"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Quest is one child document of a quest list
type Quest struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	QuestListID     primitive.ObjectID `json:"questListID" bson:"questListID"`
	Order           int                `json:"order" bson:"order"`
	Kind            string             `json:"kind" bson:"kind"`
	QuestName       string             `json:"questName" bson:"questName"`
	Description     string             `json:"description" bson:"description"`
	DiamondsRewards int                `json:"diamondsRewards" bson:"diamondsRewards"`
	PointsRewards   int                `json:"pointsRewards" bson:"pointsRewards"`
	CompletionNum   int                `json:"completionNum" bson:"completionNum"`
	MaxEarlyBird    int                `json:"maxEarlyBird,omitempty" bson:"maxEarlyBird,omitempty"`
	Question        string             `json:"question,omitempty" bson:"question,omitempty"`
	CorrectAnswer   string             `json:"correctAnswer,omitempty" bson:"correctAnswer,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}
