// Package config provides configuration structures and utilities for
// wikiwalk. It defines the experiment options (target article, step
// budget, walk count), the transport options (timeout, retries, delay),
// and report generation preferences.
package config
