package events

import "github.com/minibank/minibank/internal/domain/entity"

// Queue names are the wire contract between the services. The body on every
// queue is a flat UserView; the queue name alone carries the semantic meaning.
const (
	QueueUserCreated    = "queue_user_created"
	QueueEmailConfirmed = "queue_email_confirmed"
	QueueAccountCreated = "queue_account_created"
)

// UserView is the projection of a user carried inside events. Consuming
// services never see the identity service's full User entity.
type UserView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

// ViewOf projects a User entity into its event body.
func ViewOf(u *entity.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Confirmed: u.EmailConfirmed,
	}
}
