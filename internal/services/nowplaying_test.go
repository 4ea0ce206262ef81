package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/services"
	"github.com/wavenation/wavenation/pkg/nowplaying"
)

func TestNowPlaying_Current(t *testing.T) {
	ctx := context.Background()

	t.Run("full track", func(t *testing.T) {
		client := nowplaying.NewMockClient(nowplaying.WithTrack(&nowplaying.Track{
			Title: "Golden", Artist: "Jill Scott", Cover: "https://img.example/golden.jpg",
		}))
		np := services.NewNowPlayingService(logger.Nop(), client).Current(ctx)
		require.NotNil(t, np)
		assert.Equal(t, "Golden", np.Track)
		assert.Equal(t, "Jill Scott", np.Artist)
		require.NotNil(t, np.Artwork)
		assert.Equal(t, "https://img.example/golden.jpg", *np.Artwork)
	})

	t.Run("missing fields get placeholders", func(t *testing.T) {
		client := nowplaying.NewMockClient(nowplaying.WithTrack(&nowplaying.Track{}))
		np := services.NewNowPlayingService(logger.Nop(), client).Current(ctx)
		require.NotNil(t, np)
		assert.Equal(t, services.UnknownTrack, np.Track)
		assert.Equal(t, services.UnknownArtist, np.Artist)
		assert.Nil(t, np.Artwork)
	})

	t.Run("provider error", func(t *testing.T) {
		client := nowplaying.NewMockClient(nowplaying.WithFetchError(errors.New("timeout")))
		assert.Nil(t, services.NewNowPlayingService(logger.Nop(), client).Current(ctx))
		assert.Equal(t, 1, client.Calls())
	})

	t.Run("nothing playing", func(t *testing.T) {
		client := nowplaying.NewMockClient()
		assert.Nil(t, services.NewNowPlayingService(logger.Nop(), client).Current(ctx))
	})

	t.Run("no provider", func(t *testing.T) {
		assert.Nil(t, services.NewNowPlayingService(logger.Nop(), nil).Current(ctx))
	})
}
