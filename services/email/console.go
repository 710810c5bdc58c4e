package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/trezcool/mahudhurio/core"
)

// consoleService writes emails to stdout instead of sending them; used in
// debug mode and as the base for the test mock.
type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
			svc.send(*msg)
		}
	}
}

func (svc consoleService) send(msg core.EmailMessage) {
	if svc.disableOutput {
		return
	}

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\n", svc.defaultFromEmail.String())
	fmt.Fprintf(body, "To: %s\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(body, "Cc: %s\n", joinAddresses(msg.Cc))
	}
	fmt.Fprintf(body, "Subject: %s\n", svc.subjPrefix+msg.Subject)
	fmt.Fprintf(body, "Date: %s\n\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintln(body, msg.BodyStr)
	for _, att := range msg.Attachments {
		fmt.Fprintf(body, "[attachment: %s (%s, %d bytes)]\n", att.Filename, att.ContentType, att.Content.Len())
	}
	fmt.Println(body.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
