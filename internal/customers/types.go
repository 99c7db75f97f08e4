package customers

import "github.com/imrishuroy/easyorder/internal/store"

// Customer is a person who places orders. Email is unique across customers.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func fromRecord(r store.CustomerRecord) Customer {
	return Customer{ID: r.ID, Name: r.Name, Email: r.Email}
}
