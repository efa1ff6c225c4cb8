package emailsvc

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
)

var (
	sendgridHost     = "https://api.sendgrid.com" // mockable
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridService delivers templated emails through the SendGrid v3 API.
// Every message is sent on its own goroutine; Wait blocks until they are done.
type SendgridService struct {
	conf       *core.Config
	logger     core.Logger
	from       *sgmail.Email
	subjPrefix string
	inflight   sync.WaitGroup
}

var _ core.EmailService = (*SendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *SendgridService {
	from := conf.DefaultFromEmail()
	return &SendgridService{
		conf:       conf,
		logger:     logger,
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (svc *SendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.inflight.Add(1)
		go func(msg *core.EmailMessage) {
			defer svc.inflight.Done()
			if err := svc.deliver(msg); err != nil {
				svc.logger.Error(fmt.Sprintf("sending %q email: %v", msg.TemplateName, err), err)
			}
		}(msg)
	}
}

// Wait blocks until every message handed to SendMessages is delivered or failed.
func (svc *SendgridService) Wait() {
	svc.inflight.Wait()
}

func (svc *SendgridService) deliver(msg *core.EmailMessage) error {
	if err := msg.Render(svc.conf); err != nil {
		return errors.Wrap(err, "rendering")
	}
	if !(msg.HasRecipients() && msg.HasContent()) {
		return nil
	}

	req := sendgrid.GetRequest(svc.conf.SendgridApiKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.build(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "calling sendgrid")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// build lays out one personalization per recipient so learners never see each other.
func (svc *SendgridService) build(msg *core.EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	for _, to := range msg.To {
		p := sgmail.NewPersonalization()
		p.Subject = svc.subjPrefix + msg.Subject
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
		m.AddPersonalizations(p)
	}
	if msg.TemplateName != "" {
		m.AddCategories(msg.TemplateName)
	}

	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}
