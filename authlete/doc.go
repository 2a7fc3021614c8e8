// Package authlete is a minimal client for the Authlete API calls used by the
// sample servers, plus the wire types of the authentication callback.
//
// Only token introspection is called. The response of an introspection is
// treated as opaque: when its action is not OK, WriteResponse reproduces it
// on the wire exactly as Authlete prepared it, including the
// WWW-Authenticate challenge.
//
//	client, err := authlete.NewClient(authlete.Config{
//	    Host:             "https://evaluation-dog.authlete.net",
//	    ServiceAPIKey:    key,
//	    ServiceAPISecret: secret,
//	})
//
//	res := authlete.ProtectResource(r.Context(), client, r, []string{"profile"}, "")
//	if res.Action != authlete.ActionOK {
//	    res.WriteResponse(w)
//	    return
//	}
package authlete
