// Package docapi is the REST client for the remote document service. It owns
// request construction, the shared upstream http.Client, and decoding of the
// service's response envelopes. Document shapes are forwarded opaquely: this
// package never validates content, it only marshals payloads and surfaces
// remote failures unchanged as APIError values. Cache behavior lives one layer
// up in internal/binding; every call here always hits the network.
package docapi
