package mocks

import (
	"context"
	"fmt"
)

type MockImagePresigner struct {
	Err error
}

func (p *MockImagePresigner) GetPresignedUrlForEventImage(_ context.Context, extension string) (string, string, error) {
	if p.Err != nil {
		return "", "", p.Err
	}
	return fmt.Sprintf("https://upload.example.com/event.%s?sig=1", extension),
		fmt.Sprintf("https://cdn.example.com/event.%s", extension), nil
}
