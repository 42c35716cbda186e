package domain

// Usuario is a portal login from the users collection. Roles gate the API:
// "consulta" reads the sentence views, "admin" can trigger re-scans and
// mark rollups as analyzed.
type Usuario struct {
	Username     string   `firestore:"username" json:"username"`
	Nombre       string   `firestore:"nombre" json:"nombre"`
	PasswordHash string   `firestore:"passwordHash" json:"-"`
	Roles        []string `firestore:"roles" json:"roles"`
}
