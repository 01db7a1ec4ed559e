package models

import "time"

type LeadModel struct {
	LeadId    string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Business  string    `bson:"business" json:"business"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (m LeadModel) Id() string {
	return m.LeadId
}

func (m LeadModel) CreatedOn() time.Time {
	return m.CreatedAt
}
