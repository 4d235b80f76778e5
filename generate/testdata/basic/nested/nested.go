package nested

const Nested_Path = "/nested"

type Nested_Request struct{}
type Nested_Response struct{}
