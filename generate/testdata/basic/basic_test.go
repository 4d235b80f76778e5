package basic

const Test_Path = "/test"

type Test_Request struct{}
type Test_Response struct{}
