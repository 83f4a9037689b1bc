package message

// RequestServerInfo registers a client with the server and requests
// server info back. Must be the first message sent on a new connection.
type RequestServerInfo struct {
	id
	ClientName     string
	MessageVersion uint32
}

func (RequestServerInfo) clientMessage() {}

// IsValid requires a non-zero request id.
func (m RequestServerInfo) IsValid() error { return requireRequestID(m.Id) }

// ServerInfo answers RequestServerInfo with the server's identity,
// message template version, and ping expectations.
type ServerInfo struct {
	id
	Unvalidated
	ServerName     string
	MessageVersion uint32
	MaxPingTime    uint32
}

func (ServerInfo) serverMessage() {}

// ServerInfoV0 is the v0/v1 wire projection of ServerInfo: adds
// Major/Minor/BuildVersion fields the original spec carried before they
// were folded away, and omits nothing from ServerInfo.
type ServerInfoV0 struct {
	id
	Unvalidated
	ServerName     string
	MessageVersion uint32
	MajorVersion   uint32
	MinorVersion   uint32
	BuildVersion   uint32
	MaxPingTime    uint32
}

func (ServerInfoV0) serverMessage() {}

// ToServerInfoV0 projects a canonical ServerInfo to its v0/v1 wire shape.
// The major/minor/build fields are synthesized as zero since this
// implementation does not track a separate numeric build identity.
func ToServerInfoV0(msg ServerInfo) ServerInfoV0 {
	return ServerInfoV0{
		id:             id{Id: msg.Id},
		ServerName:     msg.ServerName,
		MessageVersion: msg.MessageVersion,
		MaxPingTime:    msg.MaxPingTime,
	}
}

// Ping must be received at least as often as ServerInfo.MaxPingTime or
// the device manager's ping timer fires.
type Ping struct {
	id
}

func (Ping) clientMessage() {}

// IsValid requires a non-zero request id.
func (m Ping) IsValid() error { return requireRequestID(m.Id) }
