package scene

import (
	"context"

	"github.com/Faultbox/meshstage/pkg/formats"
)

type nopDevice struct{}

func (nopDevice) CreateBuffer([]float32) uint32 { return 1 }
func (nopDevice) DeleteBuffer(uint32)           {}

func blockForever(ctx context.Context, source string) (*formats.MeshDescription, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
