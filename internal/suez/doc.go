// Package suez is a client for the customer portal shared by French water
// operators such as toutsurmoneau.fr.
//
// The portal has no public API. The client loads the login page, pulls
// the anti-forgery token out of it, posts the login form and keeps the
// eZSESSID cookie in a jar for the rest of the call. It then reads the
// JSON endpoints the portal's own front-end uses:
//
//	/mon-compte-en-ligne/statJData/<year>/<month>/<counter>   daily rows of a month
//	/mon-compte-en-ligne/statMData/<counter>                  monthly history
//
// Both answer ["ERR", message] on failure, which surfaces as *RemoteError.
//
// Update produces a Snapshot with yesterday's reading, this and last
// month's daily rows, the yearly history and a "last known" meter total.
// The last known total comes from a backward search of at most 60 days,
// because the current day is published as zeros until the operator's
// overnight batch has run. Day and month boundaries follow Europe/Paris.
//
// A Client is not safe for concurrent use. Each Update or CheckCredentials
// call opens its own session and nothing of it outlives the call.
//
// Example usage:
//
//	client, err := suez.NewClient(suez.Options{
//		Username: "jean@example.fr",
//		Password: "secret",
//		Provider: "toutsurmoneau",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	snap, err := client.Update(ctx)
//	if errors.Is(err, suez.ErrInvalidCredentials) {
//		log.Fatal("wrong password")
//	}
package suez
