package oauthsdk

import "strings"

// AccessTokenResponse is the body returned by a successful exchange.
type AccessTokenResponse struct {
	Token    string
	Secret   string
	Username string
	UserID   string
}

// Encode renders the response in its fixed field order:
// oauth_token, oauth_token_secret, username, userId.
func (r AccessTokenResponse) Encode() string {
	return "oauth_token=" + PercentEncode(r.Token) +
		"&oauth_token_secret=" + PercentEncode(r.Secret) +
		"&username=" + PercentEncode(r.Username) +
		"&userId=" + PercentEncode(r.UserID)
}

// ParseAccessTokenResponse parses a body produced by Encode.
func ParseAccessTokenResponse(body string) (AccessTokenResponse, error) {
	var r AccessTokenResponse
	for _, pair := range strings.Split(strings.TrimSpace(body), "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return AccessTokenResponse{}, ErrMalformed
		}
		value, err := PercentDecode(v)
		if err != nil {
			return AccessTokenResponse{}, err
		}
		switch k {
		case "oauth_token":
			r.Token = value
		case "oauth_token_secret":
			r.Secret = value
		case "username":
			r.Username = value
		case "userId":
			r.UserID = value
		}
	}
	if r.Token == "" || r.Secret == "" {
		return AccessTokenResponse{}, ErrMalformed
	}
	return r, nil
}
