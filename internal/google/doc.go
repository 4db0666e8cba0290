// Package google provides OAuth2 authorization and credential persistence for
// the Gmail API.
//
// A Credential is loaded from a Store (a token file or the OS keyring) and
// validated by the Authorizer on every call. An expired credential with a
// refresh token is refreshed silently; anything else falls through to the
// interactive consent flow, whose human step is delegated to a
// ConsentPrompter so it can be replaced in tests.
//
// Example usage:
//
//	conf, err := google.LoadClientConfig(secretPath, google.DefaultScopes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	auth := google.NewAuthorizer(conf, google.NewFileStore(google.DefaultTokenPath(), nil),
//	    google.NewTerminalPrompter(os.Stdin, os.Stderr))
//	cred, err := auth.Credential(ctx)
package google
