package protocol

type Option func(*Packet)

func WithNamespace(namespace string) Option {
	return func(pac *Packet) {
		if namespace == "" {
			namespace = DefaultNamespace
		}
		pac.Namespace = namespace
	}
}

func WithAckID(ackID uint64) Option {
	return func(pac *Packet) { pac.AckID = &ackID }
}
