package oauthsdk

import (
	"strings"
)

// Digest credential parameter names.
const (
	ParamToken              = "oauth_token"
	ParamRequestTokenSecret = "request_token_secret"
	ParamTokenSecret        = "oauth_token_secret" // accepted alias
	ParamVerifier           = "oauth_verifier"
)

const digestScheme = "Digest"

// Credentials identify an authorized request token at exchange time.
type Credentials struct {
	Token    string
	Secret   string
	Verifier string // optional
}

// Header renders c as a Digest Authorization header value.
func (c Credentials) Header() string {
	var b strings.Builder
	b.WriteString(digestScheme)
	b.WriteString(" ")
	writeParam(&b, ParamToken, c.Token)
	b.WriteString(", ")
	writeParam(&b, ParamRequestTokenSecret, c.Secret)
	if c.Verifier != "" {
		b.WriteString(", ")
		writeParam(&b, ParamVerifier, c.Verifier)
	}
	return b.String()
}

func writeParam(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value))
	b.WriteString(`"`)
}

// ParseCredentials reads a Digest Authorization header. The token and secret
// are required; the secret may be sent as request_token_secret or
// oauth_token_secret.
func ParseCredentials(header string) (Credentials, error) {
	params, err := ParseDigest(header)
	if err != nil {
		return Credentials{}, err
	}

	c := Credentials{
		Token:    params[ParamToken],
		Secret:   params[ParamRequestTokenSecret],
		Verifier: params[ParamVerifier],
	}
	if c.Secret == "" {
		c.Secret = params[ParamTokenSecret]
	}
	if c.Token == "" || c.Secret == "" {
		return Credentials{}, ErrMalformed
	}
	return c, nil
}

// ParseDigest splits a Digest header into its parameters. Values may be
// quoted (with backslash escapes) or bare tokens. Later duplicates win.
func ParseDigest(header string) (map[string]string, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, digestScheme) {
		return nil, ErrMalformed
	}

	params := make(map[string]string)
	s := strings.TrimSpace(rest)
	for s != "" {
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, ErrMalformed
		}
		key := strings.TrimSpace(s[:eq])
		s = strings.TrimLeft(s[eq+1:], " \t")

		var value string
		if strings.HasPrefix(s, `"`) {
			v, n, err := readQuoted(s)
			if err != nil {
				return nil, err
			}
			value, s = v, s[n:]
		} else {
			end := strings.IndexByte(s, ',')
			if end < 0 {
				end = len(s)
			}
			value, s = strings.TrimSpace(s[:end]), s[end:]
		}

		if key == "" {
			return nil, ErrMalformed
		}
		params[key] = value

		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] != ',' {
			return nil, ErrMalformed
		}
		s = strings.TrimLeft(s[1:], " \t")
	}

	return params, nil
}

// readQuoted consumes a quoted-string at the start of s and returns the
// unescaped value and the number of bytes consumed.
func readQuoted(s string) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", 0, ErrMalformed
			}
			i++
			b.WriteByte(s[i])
		case '"':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, ErrMalformed
}
