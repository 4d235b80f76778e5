package basic

const Listen_Path = "/listen"

type (
	Ding_DTO struct {
		ID   int    `json:"id" ark:"number"`
		Name string `json:"name" ark:"string > 0"`
		Tags []string
		Blob []byte `json:"blob"`
	}
	Listen_Request  struct{}
	Listen_Response struct {
		Dinge []Ding_DTO `json:"dinge"`
		Meta  any        `json:"meta" ark:"type:type.unknown"`
	}
)
