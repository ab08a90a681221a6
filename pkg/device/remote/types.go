package remote

type EmptyResponse struct {
}

type DrawFrameRequest struct {
	Frame []byte
}
