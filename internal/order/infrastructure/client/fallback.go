package client

import "errors"

// isNotFound is the single point where "entity does not exist" is separated
// from "service is down". A classified 404 is the only not-found verdict;
// timeouts, connection refusals, 5xx responses, decode failures and anything
// ambiguous all count as unavailable. Both the decoder path and the
// connection-failure path funnel through here so they can never disagree.
func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 404
}
