package email

import "context"

type Service interface {
	SendBookingConfirmation(ctx context.Context, to, name, serviceName, date, start string) error
	SendBookingCancellation(ctx context.Context, to, name, serviceName, date, start string) error
	SendBookingUpdate(ctx context.Context, to, name, serviceName, date, start string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}
