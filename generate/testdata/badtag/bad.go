package badtag

const Bad_Path = "/bad"

type Bad_Request struct {
	Field string `json:"field`
}

type Bad_Response struct{}
