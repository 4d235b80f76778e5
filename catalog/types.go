package catalog

// Operation paths.
const (
	ANamePath  = "/a_name"
	EinsPath   = "/eins"
	ListenPath = "/listen"
	ZweiPath   = "/zwei"
)

// DingDTO is the element type of the /listen response.
type DingDTO struct {
	ID   int    `json:"id" ark:"number"`
	Name string `json:"name" ark:"string > 0"`
}

type ANameRequest struct {
	Msg string `json:"msg" ark:"string > 0"`
}

type ANameResponse struct {
	Msg string `json:"msg" ark:"string > 0"`
}

// EinsRequest exercises every field flavour. Optional fields are pointers so that
// "absent" and "zero" stay distinguishable on the wire.
type EinsRequest struct {
	RequiredString string  `json:"requiredString" ark:"string > 0"`
	OptionalString *string `json:"optionalString,omitempty" ark:"string | undefined"`
	RequiredInt    int     `json:"requiredInt" ark:"number > 0"`
	OptionalInt    *int    `json:"optionalInt,omitempty" ark:"number | undefined"`
	RequiredBool   bool    `json:"requiredBool" ark:"boolean"`
	OptionalBool   *bool   `json:"optionalBool,omitempty" ark:"boolean | undefined"`
}

type EinsResponse struct {
	ResponseString string `json:"responseString" ark:"string > 0"`
}

type ListenRequest struct{}

type ListenResponse struct {
	Dinge []DingDTO `json:"dinge" ark:"type:Ding_DTO_Schema.array()"`
}

type ZweiRequest struct {
	OptionalString *string `json:"optionalString,omitempty" ark:"string | undefined"`
}

type ZweiResponse struct {
	ResponseString string `json:"responseString" ark:"string > 0"`
}

// Ptr returns a pointer to v, for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}
