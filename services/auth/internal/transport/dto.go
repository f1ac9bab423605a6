package transport

type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AccessResponse struct {
	AccessToken string `json:"access_token"`
}

// LogoutRequest tolerates an empty token so logout always succeeds.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ValidateRequest struct {
	Token string `json:"token" validate:"required"`
}

type ValidateResponse struct {
	User string `json:"user"`
}

type Message struct {
	Message string `json:"message"`
}
