/*
Package executor fetches collections from their remote source locator.

# Overview

The executor package provides:
  - One HTTP GET per collection fetch (no other verbs are used)
  - TLS/mTLS configuration
  - Optional bearer token authentication via an oauth2 static token source
  - Record decoding through filter.Decode (JMESPath records path)
  - Collapsing of concurrent fetches for the same locator

# Error Handling

Every failure is reported as *FetchError:
  - Transport errors (DNS, refused connections, timeouts): Status == 0
  - Non-2xx responses: Status set, Err wraps ErrUnexpectedStatus
  - Undecodable bodies: Status set, Err describes the decode failure

Callers treat all of them as a network failure; the detail is kept for
logs and the error detail view.

# Example Usage

	client, err := NewClient(Options{Timeout: 10 * time.Second})
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Fetch(ctx, collection)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
			// ...
		}
		return err
	}

	fmt.Printf("%d records in %s\n", len(result.Records), FormatDuration(result.Duration))

# Thread Safety

Client is safe for concurrent use. Fetch results are copied per caller,
so callers may keep the returned record slice.
*/
package executor
