// Package config provides configuration structures and utilities for
// privacyguard. It defines the probe endpoints and timeouts, the optional
// proxy, history storage settings, and report output preferences.
package config
