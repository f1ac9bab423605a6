package shopclient

// Session is the token pair a caller holds between requests. It is a value:
// operations that renew a token return a new Session and leave the old one
// untouched. The server re-validates every field on each use.
type Session struct {
	Username     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s Session) WithAccessToken(token string) Session {
	s.AccessToken = token
	return s
}

func (s Session) LoggedIn() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}
