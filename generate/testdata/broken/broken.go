package broken

type Broken_Request struct {
