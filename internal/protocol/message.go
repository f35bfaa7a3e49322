// Package protocol implements the SSH agent wire protocol frame structure
// (draft-miller-ssh-agent): a stream of length-prefixed, type-tagged messages.
package protocol

import "fmt"

// MessageType is the one-byte message type tag that follows the length prefix.
type MessageType uint8

const (
	MessageFailure   MessageType = 5
	MessageSuccess   MessageType = 6
	MessageRequestIdentities MessageType = 11
	MessageIdentitiesAnswer  MessageType = 12
	MessageSignRequest       MessageType = 13
	MessageSignResponse      MessageType = 14

	MessageAddIdentity               MessageType = 17
	MessageRemoveIdentity            MessageType = 18
	MessageRemoveAllIdentities       MessageType = 19
	MessageAddSmartcardKey           MessageType = 20
	MessageRemoveSmartcardKey        MessageType = 21
	MessageLock                      MessageType = 22
	MessageUnlock                    MessageType = 23
	MessageAddIDConstrained          MessageType = 25
	MessageAddSmartcardKeyConstrained MessageType = 26
	MessageExtension                 MessageType = 27
	MessageExtensionFailure          MessageType = 28
)

// String renders the SSH_AGENT_* / SSH_AGENTC_* name for known types.
func (mt MessageType) String() string {
	switch mt {
	case MessageFailure:
		return "SSH_AGENT_FAILURE"
	case MessageSuccess:
		return "SSH_AGENT_SUCCESS"
	case MessageRequestIdentities:
		return "SSH_AGENTC_REQUEST_IDENTITIES"
	case MessageIdentitiesAnswer:
		return "SSH_AGENT_IDENTITIES_ANSWER"
	case MessageSignRequest:
		return "SSH_AGENTC_SIGN_REQUEST"
	case MessageSignResponse:
		return "SSH_AGENT_SIGN_RESPONSE"
	case MessageAddIdentity:
		return "SSH_AGENTC_ADD_IDENTITY"
	case MessageRemoveIdentity:
		return "SSH_AGENTC_REMOVE_IDENTITY"
	case MessageRemoveAllIdentities:
		return "SSH_AGENTC_REMOVE_ALL_IDENTITIES"
	case MessageAddSmartcardKey:
		return "SSH_AGENTC_ADD_SMARTCARD_KEY"
	case MessageRemoveSmartcardKey:
		return "SSH_AGENTC_REMOVE_SMARTCARD_KEY"
	case MessageLock:
		return "SSH_AGENTC_LOCK"
	case MessageUnlock:
		return "SSH_AGENTC_UNLOCK"
	case MessageAddIDConstrained:
		return "SSH_AGENTC_ADD_ID_CONSTRAINED"
	case MessageAddSmartcardKeyConstrained:
		return "SSH_AGENTC_ADD_SMARTCARD_KEY_CONSTRAINED"
	case MessageExtension:
		return "SSH_AGENTC_EXTENSION"
	case MessageExtensionFailure:
		return "SSH_AGENT_EXTENSION_FAILURE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(mt))
	}
}

// Message is a tagged record of (message type, payload bytes). Payload
// excludes the type byte and the length prefix.
type Message struct {
	Type    MessageType
	Payload []byte
}

// NewMessage builds a message with the given type and payload.
func NewMessage(t MessageType, payload []byte) *Message {
	return &Message{Type: t, Payload: payload}
}

// Failure builds the canonical zero-payload SSH_AGENT_FAILURE message.
func Failure() *Message {
	return &Message{Type: MessageFailure}
}

// Success builds the canonical zero-payload SSH_AGENT_SUCCESS message.
func Success() *Message {
	return &Message{Type: MessageSuccess}
}
