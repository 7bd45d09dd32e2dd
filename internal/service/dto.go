package service

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/fairsplit/fairsplit/internal/models"
)

// FlexFloat accepts a JSON number or a numeric string. Values that do not
// parse come through as zero, matching how item prices are coerced by the
// engine.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

type itemInput struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required"`
	BaseName     string    `json:"baseName"`
	Price        FlexFloat `json:"price"`
	Participants []string  `json:"participants"`
}

func (in itemInput) toModel() models.Item {
	participants := in.Participants
	if participants == nil {
		participants = []string{}
	}
	return models.Item{
		ID:           in.ID,
		Name:         in.Name,
		BaseName:     in.BaseName,
		Price:        float64(in.Price),
		Participants: participants,
	}
}

func toModelItems(inputs []itemInput) []models.Item {
	items := make([]models.Item, len(inputs))
	for i, in := range inputs {
		items[i] = in.toModel()
	}
	return items
}

type computeRequest struct {
	Members []models.Member        `json:"members" validate:"dive"`
	Items   []itemInput            `json:"items" validate:"dive"`
	Config  models.SurchargeConfig `json:"config"`
}

type promptPayRequest struct {
	Target string   `json:"target" validate:"required"`
	Amount *float64 `json:"amount"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type createBillRequest struct {
	Title   string                 `json:"title"`
	Members []models.Member        `json:"members" validate:"min=1,dive"`
	Items   []itemInput            `json:"items" validate:"min=1,dive"`
	Config  models.SurchargeConfig `json:"config"`
}

type batchDeleteRequest struct {
	IDs []string `json:"ids" validate:"min=1,dive,required"`
}

type createRoomRequest struct {
	HostName    string                 `json:"hostName" validate:"required"`
	PromptPayID string                 `json:"promptPayId" validate:"required"`
	Members     []models.Member        `json:"members" validate:"min=1,dive"`
	Items       []itemInput            `json:"items" validate:"min=1,dive"`
	Config      models.SurchargeConfig `json:"config"`
}

type qrResponse struct {
	Payload string   `json:"payload"`
	Member  string   `json:"member,omitempty"`
	Amount  *float64 `json:"amount,omitempty"`
}
