package ir

// Instruction names understood by the twitter program.
const (
	InstrCreatePost        = "createPost"
	InstrUpdatePost        = "updatePost"
	InstrDeletePost        = "deletePost"
	InstrInitializeProfile = "initializeProfile"
	InstrUpdateProfile     = "updateProfile"
)

// OutcomeSuccess is the receipt outcome of an instruction that committed.
const OutcomeSuccess = "Success"

// Message is the signed part of a transaction.
// Addresses are carried in their base58 text form.
type Message struct {
	ProgramID   string `json:"program_id"`
	Instruction string `json:"instruction"`
	Args        Object `json:"args"`
	Signer      string `json:"signer"`
	Scheme      string `json:"scheme"`

	// RequestToken makes otherwise identical messages distinct so the same
	// operation can be resubmitted on purpose. Clients use UUIDv7.
	RequestToken string `json:"request_token"`
}

// Transaction is a message plus the signer's signature over
// SigningBytes(message), base58 encoded.
type Transaction struct {
	Message   Message `json:"message"`
	Signature string  `json:"signature"`
}

// Receipt records how the ledger executed a transaction.
// Rejected instructions still produce a receipt; only Outcome and the
// error fields tell them apart.
type Receipt struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Signer        string `json:"signer"`
	Instruction   string `json:"instruction"`
	Args          Object `json:"args"`
	Outcome       string `json:"outcome"`
	ErrorCode     int    `json:"error_code,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	ErrorDetail   string `json:"error_detail,omitempty"`
	Result        Object `json:"result"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

// Succeeded reports whether the instruction committed.
func (r Receipt) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// messageObject converts a message to an Object for canonical encoding.
func (m Message) messageObject() Object {
	args := m.Args
	if args == nil {
		args = Object{}
	}
	return Object{
		"program_id":    String(m.ProgramID),
		"instruction":   String(m.Instruction),
		"args":          args,
		"signer":        String(m.Signer),
		"scheme":        String(m.Scheme),
		"request_token": String(m.RequestToken),
	}
}
