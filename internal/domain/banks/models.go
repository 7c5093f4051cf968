package banks

import "time"

type Attribute struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Option struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Weight int    `json:"weight"`
}

type Statement struct {
	ID            string   `json:"id"`
	AttributeID   string   `json:"attributeId"`
	AttributeName string   `json:"attributeName"`
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
}

type Bank struct {
	ID         string      `json:"id"`
	CompanyID  string      `json:"companyId"`
	Name       string      `json:"name"`
	IdealScore *float64    `json:"idealScore,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	Statements []Statement `json:"statements,omitempty"`
}

// Summary is the part of a bank the score reports depend on.
type Summary struct {
	AttributeNames []string
	IdealScore     *float64
}

type CreateBankInput struct {
	Name       string   `json:"name" validate:"required,max=200"`
	IdealScore *float64 `json:"idealScore" validate:"omitempty,gte=0,lte=100"`
}

type CreateAttributeInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type OptionInput struct {
	Text   string `json:"text" validate:"required,max=200"`
	Weight int    `json:"weight" validate:"gte=0,lte=100"`
}

type AddStatementInput struct {
	AttributeID string        `json:"attributeId" validate:"required,uuid"`
	Text        string        `json:"text" validate:"required,max=1000"`
	Options     []OptionInput `json:"options" validate:"required,min=1,dive"`
}
