package model

import "time"

// Credentials identify an account on the login service.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp is the registration payload.
type SignUp struct {
	RUC      string `json:"ruc"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is an issued access token.
type Token struct {
	IssuedAt    time.Time `json:"issued_at"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
}

// RucData is the tax registry record of a company.
type RucData struct {
	RUC             string `json:"ruc"`
	RazonSocial     string `json:"razon_social"`
	NombreComercial string `json:"nombre_comercial,omitempty"`
	Estado          string `json:"estado"`
	Condicion       string `json:"condicion"`
	Direccion       string `json:"direccion,omitempty"`
	Departamento    string `json:"departamento,omitempty"`
	Provincia       string `json:"provincia,omitempty"`
	Distrito        string `json:"distrito,omitempty"`
}

// UserProfile is the signed-in company profile.
type UserProfile struct {
	RucData
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login,omitempty"`
	IsActive  bool   `json:"is_active"`
}
