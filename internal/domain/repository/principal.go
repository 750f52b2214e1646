package repository

// Principal es la identidad resuelta de un request autenticado.
// Sale de las claims del access token; no lleva hash ni fingerprint.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
