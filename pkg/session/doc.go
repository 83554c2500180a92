/*
Package session guards terminal ownership.

A terminal runs exactly one collection session at a time. The Manager hands
out a Lease per terminal ID: concurrent opens inside the process are refused
with domain.ErrTerminalBusy, and an optional distributed locker extends the
guarantee to other processes driving the same terminal ID.
*/
package session
