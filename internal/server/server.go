package server

// Server объединяет HTTP-серверы отдельных сущностей.
type Server struct {
	FlipServer
}

func NewServer(
	flipServer FlipServer,
) Server {
	return Server{
		FlipServer: flipServer,
	}
}
