package models

// CookieOptions describes how the transport layer should store issued tokens.
type CookieOptions struct {
	HTTPOnly bool `json:"httpOnly"`
	Secure   bool `json:"secure"`
}

// TokenPair is a freshly issued access/refresh pair. It is never persisted;
// only RefreshToken is stored on the owning User.
type TokenPair struct {
	AccessToken   string        `json:"accessToken"`
	RefreshToken  string        `json:"refreshToken"`
	CookieOptions CookieOptions `json:"-"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User   PublicUser `json:"user"`
	Tokens TokenPair  `json:"-"`
}
