package server

// Response is the envelope for errors the relay produces itself. Provider
// replies are never wrapped.
type Response struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}
