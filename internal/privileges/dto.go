package privileges

import "time"

// Response is the wire shape of a privilege.
type Response struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	RoleCount   int64     `json:"roleCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToResponse maps a privilege to its wire shape.
func ToResponse(p *Privilege) Response {
	return Response{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		RoleCount:   p.RoleCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToResponses maps a privilege slice to wire shapes, never nil.
func ToResponses(privs []Privilege) []Response {
	out := make([]Response, 0, len(privs))
	for i := range privs {
		out = append(out, ToResponse(&privs[i]))
	}
	return out
}
