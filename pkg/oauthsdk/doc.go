// Package oauthsdk is a small client for the oauth1d provider.
//
// It carries the wire formats shared by the server and its clients: RFC 5849
// percent-encoding, the Digest credential header used to exchange an
// authorized request token, and the form-encoded access token response.
package oauthsdk
