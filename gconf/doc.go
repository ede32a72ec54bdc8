/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration entity under the "_c:<package>"
key. The configuration is loaded from the genesis file and can later be
modified using a patch message signed by the configuration owner.
*/
package gconf
