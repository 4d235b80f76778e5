package basic

const Eins_Path = "/eins"

type Eins_Request struct {
	RequiredString string  `json:"requiredString" ark:"string > 0"`
	OptionalString *string `json:"optionalString,omitempty" ark:"string | undefined"`
	RequiredInt    int     `json:"requiredInt" ark:"number > 0"`
	OptionalInt    *int    `json:"optionalInt,omitempty"`
	RequiredBool   bool    `json:"requiredBool"`
	OptionalBool   *bool   `json:"optionalBool,omitempty" ark:"boolean | undefined"`
}

type Eins_Response struct {
	ResponseString string `json:"responseString" ark:"string > 0"`
}

const (
	Zwei_Path   = "/zwei"
	A_Name_Path = `/a_name`
)

type Zwei_Request struct {
	OptionalString *string `json:"optionalString,omitempty"`
}

type Zwei_Response struct {
	ResponseString string `json:"responseString" ark:"string > 0"`
}

type (
	A_Name_Request struct {
		Msg string `json:"msg" ark:"string > 0"`
	}
	A_Name_Response struct {
		Msg      string `json:"msg" ark:"string > 0"`
		internal string
		Skipped  string `json:"-"`
	}
)

// Ignored: no path.
type (
	Without_Path_Request  struct{}
	Without_Path_Response struct{}
)

// Ignored: no request.
const Without_Request_Path = "/without_request"

type Without_Request_Response struct{}

// Ignored: wrong suffix, not a struct, not a string.
type Other struct{}
type Alias_Request = string

const Count_Path = 3

func IgnoreMe() {}
