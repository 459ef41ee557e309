// Package streammagic provides a client for the HTTP control API of Cambridge
// Audio StreamMagic network streamers.
//
// The device exposes its control API under the /smoip/ path prefix. Every
// operation is a plain HTTP GET; settings are changed through query parameters
// and every response is a JSON object whose payload sits under a top-level
// "data" key.
//
// # Usage Example
//
//	client, err := streammagic.NewClient("192.168.1.20")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	state, err := client.GetState(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(state.FormatCompact())
//
//	if err := client.SetVolumePercent(ctx, 40); err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
// Every operation returns *Error, classified into one of three kinds:
//   - KindConnection: timeout, DNS failure, refused or reset connection,
//     non-2xx HTTP status, or a closed client
//   - KindProtocol: a successful response that is not JSON (the raw body is kept)
//   - KindValidation: an out-of-range argument, or a response field that is
//     missing or has the wrong type
//
// Use errors.Is with ErrConnection, ErrProtocol and ErrValidation, or
// errors.As to inspect the Reason, StatusCode and Body.
//
// # Retries
//
// Retries are off by default. WithRetry(DefaultRetryPolicy()) makes up to five
// attempts with exponential backoff, and only for retryable connection errors.
//
// # Connection Resource
//
// Without WithHTTPClient the client builds its own transport and Close releases
// it. A supplied *http.Client is shared and never closed by the client. Close
// may be called any number of times.
package streammagic
