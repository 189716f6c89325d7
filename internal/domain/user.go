package domain

import "github.com/google/uuid"

// StoredCredential es lo que se lee de users para verificar un login.
type StoredCredential struct {
	UserID       uuid.UUID
	Username     string
	PasswordHash string
}

// Operator es el usuario autenticado que publica newsletters.
type Operator struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Issue es una edicion del newsletter a enviar.
type Issue struct {
	Title       string `json:"title"`
	HTMLContent string `json:"html_content"`
	TextContent string `json:"text_content"`
}
