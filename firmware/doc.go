// Package firmware describes the services the surrounding pre-boot environment must supply to the
// memfix packages: memory map retrieval, page & pool allocation, the one-shot exit call, a busy-wait,
// and durable variable storage. Nothing here talks to real firmware; a UEFI binding implements
// BootServices and RuntimeServices, and package sim provides a simulated environment.
package firmware
