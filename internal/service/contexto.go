package service

import "context"

type ipOrigenKey struct{}

// ConIPOrigen attaches the caller's address to ctx so audit entries can
// record where a configuration change came from.
func ConIPOrigen(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, ipOrigenKey{}, ip)
}

func ipOrigen(ctx context.Context) *string {
	if ip, ok := ctx.Value(ipOrigenKey{}).(string); ok {
		return &ip
	}
	return nil
}
