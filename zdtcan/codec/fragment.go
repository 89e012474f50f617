package codec

// Fragment splits a command longer than 8 bytes into the ordered CAN
// frames the ZDT firmware expects: the first frame is the first 8 bytes
// verbatim, and every following frame is the command's function code
// followed by the next 7 bytes of the unused remainder. This is not
// IP-style fragmentation — the firmware reassembles by observing the
// function-code prefix repeated on every frame, not a length or offset
// field.
//
// Grounded on can_interface.py's _send_multi_packet_command: frame 0 is
// data[0:8], frame k>=1 is [function_code] + data[8+(k-1)*7 : 8+k*7].
func Fragment(cmd []byte) [][]byte {
	if len(cmd) <= 8 {
		return [][]byte{cmd}
	}

	fc := cmd[0]
	frames := [][]byte{cmd[:8]}

	remainder := cmd[8:]
	for len(remainder) > 0 {
		n := 7
		if n > len(remainder) {
			n = len(remainder)
		}
		frame := make([]byte, 0, 1+n)
		frame = append(frame, fc)
		frame = append(frame, remainder[:n]...)
		frames = append(frames, frame)
		remainder = remainder[n:]
	}

	return frames
}
