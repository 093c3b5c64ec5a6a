package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Merchandise is an item students can redeem with diamonds
type Merchandise struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	PriceDiamonds int                `json:"priceDiamonds" bson:"priceDiamonds"`
	Stock         int                `json:"stock" bson:"stock"`
	Image         string             `json:"image,omitempty" bson:"image,omitempty"`
	OrganiserID   string             `json:"organiserID" bson:"organiserID"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}
