package vision

// DefaultPrompt asks the model for a short, humorous description that
// doubles as a sound-search query.
const DefaultPrompt = `Look at this image and react to it the way a comedian with a soundboard would.
Describe, in one or two short sentences, the mood, expression or situation you see and the kind of sound effect that would match it (for example: a crowd cheering, a sad trombone, rain on a window, a dramatic sting).
Keep it light and funny. Reply with the description only, no preamble, no lists, no markdown.`
