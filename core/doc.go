// Package core provides the giga client and the contracts transports implement.
//
// giga talks to the GigaChat API in two steps: exchange client credentials for
// a short-lived bearer token, then post one system/user prompt pair to the
// chat-completions endpoint and return the raw JSON response.
//
// # Client and Transport
//
// The entry point is [Client], which wraps a [Transport] and adds credential
// validation and telemetry:
//
//	t, _ := transports.Create("http", transports.Config{})
//	creds := core.NewCredentials(clientID, clientSecret, "")
//	client := core.NewClient(t, creds, core.WithTelemetry(hook))
//
//	result, err := client.Chat().
//	    System("You are a comedian.").
//	    User("Tell me a short joke.").
//	    GetResponse(ctx)
//
// A Transport is both a [TokenProvider] and a [ChatClient]. Implementations live
// under the transports directory: httpapi performs the calls with net/http,
// curl shells out to the curl binary.
//
// # Results
//
// [ChatResult] is the decoded response body, returned unchanged. Helper
// accessors such as [ChatResult.Content] read well-known fields without
// mutating the map.
//
// # Errors
//
// Token failures are reported as [*AuthenticationError]; completion failures
// as [*APIError]. Both embed the HTTP status and raw body in their message and
// unwrap to a sentinel for classification:
//
//	if errors.Is(err, core.ErrNetwork) {
//	    // transport failure or timeout
//	}
//
// There is no retry and no token caching: every call to [Client.Complete]
// performs at most two sequential round trips.
package core
