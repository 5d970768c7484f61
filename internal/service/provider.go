// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"errors"

	"github.com/vorlif/spreak"

	"github.com/wneessen/trailnav/internal/geobus"
	"github.com/wneessen/trailnav/internal/geobus/provider/gpsd"
	"github.com/wneessen/trailnav/internal/geobus/provider/sensorproxy"
	"github.com/wneessen/trailnav/internal/geobus/provider/trackfile"
	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/notify"
	"github.com/wneessen/trailnav/internal/permission"
	"github.com/wneessen/trailnav/internal/proximity"
)

var ErrNoLocationProvider = errors.New("no location providers enabled")

func (s *Service) selectLocationProviders() ([]geobus.Provider, error) {
	var provider []geobus.Provider

	if s.config.Location.TrackFile != "" {
		provider = append(provider, trackfile.New(s.config.Location.TrackFile, s.config.Location.TrackFilePeriod))
	}

	if !s.config.Location.DisableGPSD {
		provider = append(provider, gpsd.New(s.config.Location.GPSDAddr,
			s.config.Navigation.LocationUpdateInterval, s.logger))
	}

	if len(provider) == 0 {
		return nil, ErrNoLocationProvider
	}
	return provider, nil
}

// selectOrientationProviders may return no providers. The session then navigates without a
// heading.
func (s *Service) selectOrientationProviders() []geobus.Provider {
	var provider []geobus.Provider
	if !s.config.Orientation.DisableSensorProxy {
		provider = append(provider, sensorproxy.New(s.logger))
	}
	return provider
}

func (s *Service) selectPermissionOracle() permission.Oracle {
	if s.config.Location.UseGeoCluePermission {
		return permission.NewGeoClueAgent()
	}
	return permission.Static(!s.config.Location.PermissionDenied)
}

func (s *Service) selectNotifier(loc *spreak.Localizer) notify.Notifier {
	format := localizedFormatter(loc)
	notifier := notify.Multi{notify.NewLog(s.logger, format)}
	if s.config.Notify.Desktop {
		notifier = append(notifier, notify.NewDesktop(format))
	}
	return notifier
}

// localizedFormatter renders arrival messages in the language of the localizer. A nil
// localizer selects the English default.
func localizedFormatter(loc *spreak.Localizer) notify.Formatter {
	if loc == nil {
		return notify.DefaultFormatter
	}
	return func(arrival proximity.Arrival) (string, string) {
		summary := loc.Getf("Arrived at %s", arrival.Target.Name)
		body := loc.Getf("%s %s, %s away", arrival.Target.Category.Icon(), arrival.Target.Category.Label(),
			geomath.FormatDistance(arrival.Distance))
		return summary, body
	}
}
